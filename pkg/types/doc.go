// Package types defines the wire types shared by the API server and the
// pipelinectl client. Field names and enum literals are a contract with the
// dashboard front-end and must not change.
package types
