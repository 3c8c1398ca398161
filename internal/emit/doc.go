// Package emit writes generated samples to disk through an external ffmpeg
// encode and, for audio-conditioned records, muxes the audio asset into the
// final container with shortest-stream semantics.
package emit
