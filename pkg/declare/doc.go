// Package declare loads store definitions from YAML.
//
// A definition file lists stores with their initial state, getters written
// as expressions and actions that assign expression results to state
// fields:
//
//	stores:
//	  - id: counter
//	    state:
//	      count: 0
//	    getters:
//	      double: count * 2
//	    actions:
//	      add:
//	        set:
//	          count: count + args[0]
//	        return: count
//
// Expressions use the github.com/expr-lang/expr language. They see every
// state field by name, the whole state as "state" and, in actions, the call
// arguments as "args". Every expression is compiled when the file is
// loaded. An action evaluates all its set expressions against the state
// before the call, applies them as one patch and then evaluates return
// against the new state.
package declare
