package otel

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Trace context carried through the process environment so a worker started by a scheduler
// can link its spans to the caller.
//
// Keys are stored under envPrefix to avoid collisions with unrelated variables. Values set on
// the carrier shadow the environment until rendered with Environ.
type EnvCarrier struct {
	vars map[string]string
}

var _ propagation.TextMapCarrier = (*EnvCarrier)(nil)

func NewEnvCarrier() EnvCarrier {
	return EnvCarrier{vars: make(map[string]string)}
}

const envPrefix = "GRADER_TRACE_"

func mapKey(key string) string {
	return fmt.Sprintf("%s%s", envPrefix, strings.ToUpper(strings.ReplaceAll(key, "-", "_")))
}

// lossy for keys that contained _ originally
func unmapKey(mappedKey string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(mappedKey, envPrefix), "_", "-"))
}

func (c EnvCarrier) Get(key string) string {
	key = mapKey(key)
	if v, ok := c.vars[key]; ok {
		return v
	}

	return os.Getenv(key)
}

func (c EnvCarrier) Set(key string, value string) {
	c.vars[mapKey(key)] = value
}

func (c EnvCarrier) Keys() []string {
	keysSet := make(map[string]struct{}, len(c.vars))

	for name := range c.vars {
		keysSet[unmapKey(name)] = struct{}{}
	}

	for _, env := range os.Environ() {
		name, _, _ := strings.Cut(env, "=")
		if !strings.HasPrefix(name, envPrefix) {
			continue
		}
		keysSet[unmapKey(name)] = struct{}{}
	}

	keys := make([]string, 0, len(keysSet))
	for k := range keysSet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// KEY=VALUE pairs for the variables set on the carrier, suitable for exec.Cmd.Env
func (c EnvCarrier) Environ() []string {
	env := make([]string, 0, len(c.vars))
	for name, value := range c.vars {
		env = append(env, name+"="+value)
	}
	sort.Strings(env)

	return env
}

// Trace headers to embed in a queue message
func InjectMessage(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	return carrier
}

// Context carrying the remote span found in a queue message, ctx unchanged when there is none
func ExtractMessage(ctx context.Context, headers map[string]string) context.Context {
	if len(headers) == 0 {
		return ctx
	}

	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headers))
}
