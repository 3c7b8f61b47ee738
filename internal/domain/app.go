// Package domain defines the core types and interfaces for the notification
// speaker. All other packages depend on domain; domain depends on nothing.
package domain

// App is a notification source, identified by its package ID.
type App struct {
	ID      string
	Label   string
	Enabled bool
}
