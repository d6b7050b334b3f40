/*
Package session implements the checkpointer.

It serializes access to each (thread, namespace, checkpoint) key, optionally
across replicas through a distributed locker, and refuses any save that would
rewrite messages already committed for that key.
*/
package session
