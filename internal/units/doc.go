// Package units defines the naming convention for rendered audio units,
// the contract between the renderer that writes clip files and the
// assembler that reads them back. Every unit has a role (title, author,
// chapter count, chapter announcement, or chunk) and a deterministic
// filename, with chunk indices zero padded so lexicographic directory
// order matches playback order.
package units
