/*
Package jot is a container of movable image and text overlays. Elements are
placed on a canvas and manipulated through gestures (tap, long-press, pan,
pinch and rotate) delivered by the host; every gesture session records one
undo snapshot in a single history shared by all the elements.

The package does not draw by itself: rendering is delegated to a Backend.
The default RasterBackend draws images and text with the imaging package.

A simple example:

	package main

	import (
		"image"
		"log"

		"github.com/stevestencil/jot"
	)

	func main() {
		c, err := jot.NewContainer(jot.Options{
			CanvasSize: jot.Size{W: 800, H: 600},
		})
		if err != nil {
			log.Fatal(err)
		}
		txt, err := c.AddText("hello", jot.DefaultTextStyle)
		if err != nil {
			log.Fatal(err)
		}

		// A pan moving the text 100px to the right.
		p := txt.Transform().Center()
		c.HandleGesture(jot.GestureEvent{Kind: jot.GesturePan, Phase: jot.PhaseBegan, Point: p})
		c.HandleGesture(jot.GestureEvent{Kind: jot.GesturePan, Phase: jot.PhaseChanged, Point: p, Translation: jot.Pt(100, 0)})
		c.HandleGesture(jot.GestureEvent{Kind: jot.GesturePan, Phase: jot.PhaseEnded, Point: p})

		img, err := c.Render()
		if err != nil {
			log.Fatal(err)
		}
		_ = img
	}
*/
package jot
