package scoring

import "errors"

var (
	// ErrModelUnavailable means the embedding or probability model could not be loaded or run.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrModelOutputInvalid means the probability model returned a value outside [0, 1].
	ErrModelOutputInvalid = errors.New("model output invalid")
	// ErrUnknownStrategy is returned for a strategy name the registry does not know.
	ErrUnknownStrategy = errors.New("unknown scoring strategy")
	// ErrUnknownProfile is returned for a heuristic profile name that does not exist.
	ErrUnknownProfile = errors.New("unknown heuristic profile")
)
