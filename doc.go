/*
Package openair builds live instrument control panels from declarative
documents. A panel document describes a tree of widgets (knobs, faders,
multi-channel faders, metered knobs, shutter actuators); the composition
engine instantiates them, derives a unique pub/sub topic for each control
from its position in the tree, and keeps every panel on the bus converged
on the same values.

# Concept

Each control binds one value model to one topic through the state mirror.
A local gesture updates the model and publishes exactly once; a message
from a remote panel updates the model and redraws, and never re-publishes.
Publications carry the process GUID so at-least-once delivery of a panel's
own messages cannot echo back into its models.

All widget and model mutation happens on a single scheduler goroutine.
Broker deliveries, HTTP writes, and MCP tool calls hand closures to that
goroutine instead of touching state directly.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/apkaudio/openair"
		"github.com/apkaudio/openair/pkg/adapters/jsondoc"
		"github.com/apkaudio/openair/pkg/adapters/term"
	)

	func main() {
		surface := term.NewSurface()
		app, err := openair.New(jsondoc.NewLoader("panel.yaml"),
			openair.WithCanvas(surface.Root()),
		)
		if err != nil {
			log.Fatal(err)
		}
		defer app.Close()

		ctx := context.Background()
		if err := app.Build(ctx); err != nil {
			log.Fatal(err)
		}
		if err := app.Run(ctx); err != nil {
			log.Println(err)
		}
	}
*/
package openair
