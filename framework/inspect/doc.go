// Package inspect exposes a live container over HTTP for debugging.
//
//	router := routing.New(log)
//	router.Prefix("/debug/container", inspect.New(c, log).Register)
//	http.ListenAndServe(":8000", router)
//
// Responses use the {"data": ...} envelope. Failed resolutions return the
// error kind, type, parameter and resolution path next to the message:
//
//	{"message": "container: cycle [Chicken]: ...", "kind": "cycle", "path": ["chicken", "egg", "chicken"]}
package inspect
