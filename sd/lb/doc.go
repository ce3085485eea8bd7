// Package lb deals with client-side selection across multiple identical
// instances yielded by an sd.Instancer. It makes a single pick per call and
// keeps no history of previous picks or failures.
package lb
