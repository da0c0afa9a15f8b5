/*
Package main contains a command-line example for gxxws.

The example shows how to:
  - configure a serial connection from command-line flags
  - select the polling or the event driven transport
  - register trace and state callbacks and a structured logger
  - run one device command and print the result
  - capture the commands of the event driven transport to a file
*/
package main
