// Package planner makes the resume decision at startup: it finds the daily
// checkpoint (today's, else the most recently modified one), resumes its
// remaining sheet when usable, and otherwise queries the database.
package planner
