/*
Package lrkit is a compiler-construction toolbox.

It turns a textual lexical specification into a table-driven lexer, and a
textual context-free grammar into LR(1) parser tables. Both paths share the
same automaton machinery. Package structure is as follows:

■ automaton: Package automaton implements automaton graphs, epsilon closure and
subset construction, generic over state and symbol types.

■ regex: Package regex compiles regular expressions into epsilon-NFAs (Thompson
construction).

■ lex: Package lex reads lexical specifications, generates lexer tables and runs
a table-driven lexer.

■ lr: Package lr implements grammars, FIRST sets and the construction of LR(1)
parser tables. Sub-packages contain the shift-reduce runtime (lr/lr1) and
scanner interfaces (lr/scanner).

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lrkit
