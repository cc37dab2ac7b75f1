/*
Package widget provides the live control implementations composed onto a
panel: the rotary knob, the vertical fader, the multichannel composite
fader, the meter-with-knob composite, and the animated actuator.

Every widget owns its ValueModel exclusively, renders through the Canvas
port, and routes gestures through a gesture.Tracker. Leaf widgets register
themselves with the state mirror; widgets embedded inside a composite are
built with an existing model and publish only through the composite's own
registration, so a single gesture can never publish twice.
*/
package widget
