/*
Package args turns a raw argument vector into a command name and a
case-insensitive dictionary of flag values.

# Grammar

The first token of the vector is the command name. Every following token is a
flag token:

	marker Name [ '=' Value ]

where marker is '-' or '/'. Everything after the first '=' is the value, so
values may themselves contain '='. A token without '=' has the empty string as
its value, which the binder treats as "flag present" for boolean fields.

	run -Data=Test /verbose -Items=a,b,c

yields the command "run" and the dictionary {Data: "Test", verbose: "", Items: "a,b,c"}.

# Duplicates

Keys compare case-insensitively. A later occurrence of a key overwrites the
value of an earlier one without error; the entry keeps the position of its
first occurrence, so iteration order is stable for diagnostics.
*/
package args
