/*
Package observability provides tools for monitoring a running panel.

It includes lifecycle hook fan-out, so metrics, logging and custom hooks
can observe the same events, and a bounded recorder for capturing recent
topic activity.
*/
package observability
