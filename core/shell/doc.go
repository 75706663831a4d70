// Package shell implements the interactive command interpreter: parsing a line
// into pipeline stages, resolving each stage to a builtin or an executable on
// the search path, wiring stages together and waiting for them to finish.
//
// A line goes through roughly the steps of
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
// with most of the grammar left out:
//
//  1. The line is broken into tokens, respecting single and double quotes.
//  2. Unquoted pipe operators split the line into stages.
//  3. At most one redirection is removed from each stage.
//  4. Each stage is resolved to a builtin or an executable file.
//  5. All stages are started, connected with pipes, and waited on.
package shell
