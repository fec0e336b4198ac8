// Package natural provides numeric-aware string ordering so that
// "Disk 2" sorts before "Disk 10".
package natural
