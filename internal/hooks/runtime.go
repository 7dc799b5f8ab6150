package hooks

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	requirePkg "github.com/dop251/goja_nodejs/require"
)

type Runtime struct {
	*requirePkg.RequireModule
	*goja.Runtime
	l *log.Logger
	// imported lists the modules pulled in through require.
	imported []string
}

// NewRuntime creates a js runtime whose console and print write to l and
// whose require resolves relative to wd.
func NewRuntime(l *log.Logger, wd string) (*Runtime, error) {
	registry := new(requirePkg.Registry)
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(&printer{l: l}))
	runtime := goja.New()
	reqM := registry.Enable(runtime)
	console.Enable(runtime)
	cRuntime := Runtime{
		Runtime:       runtime,
		RequireModule: reqM,
		l:             l,
		imported:      []string{},
	}
	if err := runtime.Set("print", cRuntime.print); err != nil {
		return nil, err
	}
	if err := runtime.Set("require", cRuntime.require(wd)); err != nil {
		return nil, err
	}
	return &cRuntime, nil
}

func (r *Runtime) print(call goja.FunctionCall) goja.Value {
	parts := make([]string, 0, len(call.Arguments))
	for _, v := range call.Arguments {
		parts = append(parts, fmt.Sprint(v.Export()))
	}
	r.l.Println(strings.Join(parts, " "))
	return nil
}

func (r *Runtime) require(wd string) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		modName := call.Argument(0).String()
		modPath := filepath.Join(wd, modName)
		v, err := r.RequireModule.Require(modPath)
		if err != nil {
			r.l.Println("require: failed to import module:", modName)
			return nil
		}
		r.imported = append(r.imported, modName)
		return v
	}
}

// printer routes console.* output to the daemon log.
type printer struct {
	l *log.Logger
}

func (p *printer) Log(s string)   { p.l.Println("hook:", s) }
func (p *printer) Warn(s string)  { p.l.Println("hook warning:", s) }
func (p *printer) Error(s string) { p.l.Println("hook error:", s) }
