package v1

var Display = display
