package script

import (
	lua "github.com/yuin/gopher-lua"
)

// CreateLayer records a layer over the current sources. From then on the
// source collection is frozen.
func (s *Session) CreateLayer(name string) (*Layer, error) {
	if name == "" {
		return nil, newError(KindPolicyViolation, nil, "layer name must not be empty").withOp("layers.create")
	}
	for _, l := range s.layers {
		if l.Name == name {
			return nil, newError(KindPolicyViolation, nil, "layer %q already exists", name).withOp("layers.create")
		}
	}
	if err := s.SetFlag(FlagLayerCreated, true); err != nil {
		return nil, err
	}

	s.layers = append(s.layers, Layer{Name: name, Sources: s.sources.Entries()})
	s.logger.Debug().Str("layer", name).Int("sources", s.sources.Len()).Msg("Created layer")
	return &s.layers[len(s.layers)-1], nil
}

func registerLayers(s *Session, root *lua.LTable) error {
	_, err := s.registerFuncs(root, "layers", map[string]lua.LGFunction{
		"create": s.luaLayersCreate,
		"list":   s.luaLayersList,
	})
	return err
}

// luaLayersCreate returns the number of layers after creating one.
func (s *Session) luaLayersCreate(L *lua.LState) int {
	if _, err := s.CreateLayer(L.CheckString(1)); err != nil {
		return s.raise(L, err)
	}
	L.Push(lua.LNumber(len(s.layers)))
	return 1
}

func (s *Session) luaLayersList(L *lua.LState) int {
	names := make([]string, len(s.layers))
	for i, l := range s.layers {
		names[i] = l.Name
	}
	L.Push(stringList(L, names))
	return 1
}
