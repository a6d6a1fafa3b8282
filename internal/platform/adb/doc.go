// Package adb implements the platform interfaces on top of the Android
// Debug Bridge: uiautomator for hierarchy snapshots, "input" for synthesized
// touches and keys, screencap for screenshots and port forwarding for the
// app's debug endpoint.
package adb
