// Package main hosts the cnpjscan CLI.
//
// run resolves pending CNPJs against ReceitaWS and checkpoints to the daily
// spreadsheet, plan previews the resume decision, status summarizes an
// artifact, and config scaffolds and checks the configuration file. The
// commands only wire internal packages together.
package main
