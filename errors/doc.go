/*
Package errors implements custom error interfaces for valset.

Every error in the application wraps one of the registered root
errors, so that error conditions can be tested with the Is method
regardless of how many layers of context were added on the way up, and
each failure maps to a stable numeric code on the ABCI interface.

Extensions declare their own root errors with Register, using a code
range reserved for that package.
*/
package errors
