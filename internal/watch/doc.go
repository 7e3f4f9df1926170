// Package watch re-runs the filter whenever the settings file or one of the
// input documents changes. Bursts of file events are debounced into a
// single run that receives every path touched during the burst.
package watch
