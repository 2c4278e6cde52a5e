// Package telemetry configures structured logging for dfim.
//
// Logs are written with zerolog, either as JSON or through the console
// writer, to stdout, stderr or a file. Components derive child loggers that
// carry a component field:
//
//	logger, err := telemetry.NewLogger(telemetry.LoggingConfig{
//		Level:  "info",
//		Format: "console",
//		Output: "stderr",
//	})
//	if err != nil {
//		return err
//	}
//	defer logger.Close()
//
//	scriptLog := logger.NewComponentLogger("script")
//	scriptLog.Info("Session started")
//
// The logger can travel in a context.Context with WithContext and FromContext.
package telemetry
