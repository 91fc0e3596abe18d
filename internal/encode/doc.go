// Package encode converts the stitched WAV master into distribution
// formats by shelling out to ffmpeg. MP3 output is a plain transcode;
// M4B output additionally embeds book metadata, millisecond chapter
// markers, and the cover image.
package encode
