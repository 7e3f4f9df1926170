// Package output serializes filtered documents and writes them out.
//
// Encoders are looked up by format name in a [Registry]; JSON is produced
// with ojg using sorted keys, YAML with yaml.v3. Both are deterministic for
// a given document so that repeated runs and diffs are stable. Writers send
// the bytes to stdout or to a file.
package output
