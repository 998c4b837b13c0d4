package eval

// Status codes returned by the shell itself.
//
// POSIX only specifies the status code for [StatusCommandNotExecutable] and
// [StatusCommandNotFound] and the status code when a command was killed by a
// signal; the other codes here are internal to this shell.
//
// The practice of using 0 for no error is really well known, so we don't
// define a constant for it; code should just use 0.
const (
	// Same as dash and bash; zsh uses 1.
	StatusSyntaxError = 2

	StatusPipeError        = 100
	StatusWaitError        = 101
	StatusWaitOther        = 102
	StatusRedirectionError = 103

	// Specified by POSIX.
	StatusCommandNotExecutable = 126
	StatusCommandNotFound      = 127
	StatusSignalBase           = 128
)
