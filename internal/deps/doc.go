// Package deps resolves the external tools the pipeline shells out to and
// probes whether they actually execute.
package deps
