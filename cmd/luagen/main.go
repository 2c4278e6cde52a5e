// Command luagen compiles the builtin Lua modules into a Go source file.
//
//	go run ./cmd/luagen -dir pkg/script/runtime -out pkg/script/builtin_gen.go
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dfim/dfim/pkg/luagen"
)

func main() {
	dir := flag.String("dir", "runtime", "directory containing the builtin Lua sources")
	out := flag.String("out", "builtin_gen.go", "generated Go file")
	pkg := flag.String("pkg", "script", "package name of the generated file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	modules, err := luagen.Generate(*dir, *out, *pkg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate builtin modules")
	}
	for _, m := range modules {
		log.Info().Str("module", m.Name).Str("path", m.Path).Msg("Compiled builtin module")
	}
}
