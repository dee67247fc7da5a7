// Package container is a rule-driven dependency resolution engine.
//
// # Overview
//
// Given a type name, the container builds a fully wired instance: it looks
// up the rule for the type, resolves every constructor parameter (explicit
// arguments, shared instances, substitutions, injected dependencies,
// defaults) and recurses into dependencies. Types are described by a
// typeinfo.Provider; the container never parses configuration files itself.
//
//	reg := typeinfo.NewRegistry()
//	reg.MustRegister("Logger", NewLogger)
//	reg.MustRegister("Service", NewService, typeinfo.Params("name", "logger"))
//
//	c := container.New(reg)
//	_ = c.AddRule("Logger", container.Shared(true))
//	_ = c.AddRule("Service", container.ConstructParams(container.Args{"name": "svc"}))
//
//	svc, err := container.Make[*Service](c, "Service")
//
// # Rules
//
// Every rule starts as a copy of the wildcard rule ("*") current at the time
// of registration. Lookup uses the type's own rule, else the nearest
// ancestor rule with Inherit set, else the wildcard rule.
//
//	c.AddRule("*", container.Shared(true))                 // template for later rules
//	c.AddRule("Cache", container.InstanceOf("RedisCache")) // interface binding
//	c.AddRule("Worker",
//	    container.NewInstances("Buffer"),                   // fresh Buffer per Worker
//	    container.ShareInstances("Tx"),                     // one Tx for the whole tree
//	    container.CallMethod("SetRetries", 3),              // after construction
//	)
//
// # Deferred values
//
// A Deferred anywhere inside ConstructParams, substitutions or call
// arguments is invoked at resolution time, also when nested in Args,
// map[string]any or []any values. Ref, Lazy, Self and Env build common ones.
//
//	c.AddRule("Report", container.ConstructParams(container.Args{
//	    "opts": map[string]any{"clock": container.Ref("Clock")},
//	}))
//
// # Contextual substitution
//
//	c.When("PhotoController").Needs("Filesystem").GiveType("S3Filesystem")
//
// # Service providers
//
//	registry := container.NewProviderRegistry(c)
//	_ = registry.Register(&AppServiceProvider{})
//	_ = registry.Boot()
//
// # Errors
//
// Failures are *Error values with a Kind; the package sentinels match with
// errors.Is. A resolution that requires the type it is building fails with
// KindCycle instead of recursing forever. A failed build never populates the
// shared-instance cache.
package container
