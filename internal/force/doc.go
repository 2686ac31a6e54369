// Package force implements the charge-and-gravity bubble layout.
//
// Engine.Step is a pure transition over State. Simulation owns one State,
// applies steps to it and fans reports out to observers. Neither type is
// safe for concurrent use.
package force
