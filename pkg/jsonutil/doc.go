/*
Package jsonutil provides JSON serialization shortcuts for mixed values.

Clean normalizes arbitrary values into shapes encoding/json always accepts:
times become RFC 3339 strings, byte slices base64, errors their message,
and containers are walked recursively. Marshal and MarshalIndent wrap
encoding/json over the cleaned value.

Slug turns arbitrary names into file names safe on every platform.
*/
package jsonutil
