// Driftwatch - StackSet Drift Detection Watchdog
// Trigger. Evaluate. Notify.
package main

func main() {
	Execute()
}
