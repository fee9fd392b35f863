// Package pipeline orchestrates the change-detection stages: band
// loading, index computation, mask segmentation, region classification,
// and geometry construction.
//
// This package is the composition root: it imports the stage packages
// (raster, spectral, segment, classify, geometry), and none of those
// import pipeline. A Detector is stateless across invocations; separate
// comparisons may run concurrently without locking.
package pipeline
