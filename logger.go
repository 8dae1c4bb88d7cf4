package accounts

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Logger is the minimal logging surface the package depends on. Arguments
// are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args...) }
func (d defLogger) Info(msg string, args ...any)  { d.print("INF", msg, args...) }
func (d defLogger) Warn(msg string, args ...any)  { d.print("WRN", msg, args...) }
func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args...) }

func (defLogger) print(level, msg string, args ...any) {
	if len(args) == 0 {
		fmt.Printf("[%s] ACCOUNTS %s\n", level, msg)
		return
	}
	fmt.Printf("[%s] ACCOUNTS %s %v\n", level, msg, args)
}

// ZerologAdapter bridges a zerolog.Logger into the package Logger interface.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter wraps the given zerolog logger
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

var _ Logger = (*ZerologAdapter)(nil)

func (z *ZerologAdapter) Debug(msg string, args ...any) {
	z.logger.Debug().Fields(pairsToMap(args)).Msg(msg)
}

func (z *ZerologAdapter) Info(msg string, args ...any) {
	z.logger.Info().Fields(pairsToMap(args)).Msg(msg)
}

func (z *ZerologAdapter) Warn(msg string, args ...any) {
	z.logger.Warn().Fields(pairsToMap(args)).Msg(msg)
}

func (z *ZerologAdapter) Error(msg string, args ...any) {
	z.logger.Error().Fields(pairsToMap(args)).Msg(msg)
}

func pairsToMap(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}

	fields := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", args[i])
		}
		fields[key] = args[i+1]
	}

	if len(args)%2 != 0 {
		fields["arg"] = args[len(args)-1]
	}

	return fields
}
