/*
Package dsl provides a Go DSL for programmatically constructing panel trees.

It lets developers define panels with a type-safe, fluent builder pattern
instead of external YAML or JSON documents. This is particularly useful for
dynamic panel generation, unit testing, and leveraging IDE autocompletion.

Example usage:

	package main

	import (
		"github.com/apkaudio/openair/pkg/dsl"
	)

	func main() {
		panel := dsl.New()

		eq := panel.Group("eq")
		eq.Knob("low").Range(0, 100).Default(50)
		eq.Knob("high").Range(0, 100).Default(50)

		panel.MultiFader("monitors").Channels(4).Range(0, 127)
		panel.Actuator("mains").Label("MAINS")

		// The resulting builder can be used as a ports.TreeLoader.
		// ... pass panel to openair.New(...)
	}
*/
package dsl
