// Package devtools is a local inspector for a store container.
//
// An Inspector serves the state of every built store over HTTP, accepts
// patches, resets and action calls, and streams store events to websocket
// clients. Install its plugin on the container so events are broadcast:
//
//	c := store.New()
//	insp := devtools.New(c)
//	c.Use(insp.Plugin())
//	http.ListenAndServe("localhost:7070", insp)
//
// Routes:
//
//	GET   /stores                      every built store
//	GET   /stores/{id}                 one store
//	PATCH /stores/{id}                 merge a JSON object into the state
//	POST  /stores/{id}/reset           reset an options store
//	POST  /stores/{id}/actions/{name}  call an action with a JSON array of args
//	GET   /ws                          event stream
package devtools
