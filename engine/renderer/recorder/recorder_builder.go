package recorder

// RecorderBuilderOption is a functional option used to configure a Recorder during construction.
type RecorderBuilderOption func(*Recorder)

// WithFailure makes every command of the given type fail with err. Failing commands are still recorded.
//
// Parameters:
//   - cmd: the command type to fail
//   - err: the error to return
//
// Returns:
//   - RecorderBuilderOption: a function that installs the failure
func WithFailure(cmd CommandType, err error) RecorderBuilderOption {
	return func(r *Recorder) {
		r.failures[cmd] = err
	}
}

// WithoutByteCopies stops the recorder from copying uploaded bytes into each Command. Geometries still keep
// their latest contents. Useful for long headless runs.
//
// Returns:
//   - RecorderBuilderOption: a function that disables byte copies
func WithoutByteCopies() RecorderBuilderOption {
	return func(r *Recorder) {
		r.copyBytes = false
	}
}
