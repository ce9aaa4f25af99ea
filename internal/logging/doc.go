// Package logging provides leveled logging for the footage tracker.
//
// The level is read once from the LOG_LEVEL environment variable
// (debug, info, warn, error; default info). Setting DEBUG=true forces
// debug level regardless of LOG_LEVEL.
package logging
