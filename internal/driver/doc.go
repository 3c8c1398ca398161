// Package driver sequences conditioning records through latent preparation,
// sample generation, and artifact emission for one replica of a run.
package driver
