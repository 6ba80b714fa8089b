package common

import "github.com/go-andiamo/mvctest/framing"

// Action is the interface that describes a routable controller action
type Action interface {
	// DisplayName is the fully qualified name of the action (e.g. "example.com/api.PetsController.Get")
	DisplayName() string
	// Template is the attribute route template of the action ("" for conventionally routed actions)
	Template() string
	// HttpMethods are the http methods the action is restricted to (empty means any)
	HttpMethods() []string
}

// Assertion is the interface that describes an assertion made against an action
type Assertion interface {
	Name() string
	framing.Framed
}
