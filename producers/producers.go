// Package producers provides ready made pullstream.Producer implementations
// for common value sources such as slices, channels, iter sequences,
// bufio scanners, sql rows and paginated APIs.
package producers
