package backend

// LlamaBuilt reports whether the in-process llama generator is compiled in.
func LlamaBuilt() bool { return llamaBuilt }
