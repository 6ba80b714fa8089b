package mvc

// Options are the mvc options of an application
type Options struct {
	// MaxModelValidationErrors is the maximum number of model errors recorded in model state (default 200)
	MaxModelValidationErrors int
	// DefaultController is the controller used by conventional routing when no controller segment is present (default "Home")
	DefaultController string
	// DefaultAction is the action used by conventional routing when no action segment is present (default "Index")
	DefaultAction string
	// SuppressModelStateInvalidFilter disables the automatic bad request for invalid model state on api controllers
	SuppressModelStateInvalidFilter bool
}

func DefaultOptions() Options {
	return Options{
		MaxModelValidationErrors: 200,
		DefaultController:        "Home",
		DefaultAction:            "Index",
	}
}
