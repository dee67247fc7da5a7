// Package typeinfo describes constructible types by name.
//
// It is the introspection layer under the container: for a type name it
// reports whether a constructor exists, the constructor's ordered parameters
// (name, Go type, registered type name, variadic flag, default) and the
// type's ancestors. Go has no constructor reflection for parameter names, so
// names and defaults are supplied at registration:
//
//	reg := typeinfo.NewRegistry()
//	reg.MustRegister("Logger", NewLogger)
//	reg.MustRegister("Service", NewService,
//	    typeinfo.Params("name", "logger"),
//	    typeinfo.Default("name", "default"),
//	)
//
// Ancestors are declared with Extends or discovered from embedded struct
// fields whose types are registered.
package typeinfo
