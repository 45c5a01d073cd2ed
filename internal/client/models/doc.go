// Package models holds the console's transient copies of backend records.
// The backend owns every entity; values here are refreshed by re-fetching
// after each mutation.
package models
