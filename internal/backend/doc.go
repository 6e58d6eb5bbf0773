// Package backend provides the concrete inference capabilities consumed by the
// registry. Each capability is a small interface; implementations live in
// files named by runtime:
//
//   - adapter_iface.go: capability interfaces and result types.
//   - adapter_remote.go: HTTP client for a HuggingFace-style inference server
//     (token classification, zero-shot, feature extraction, text2text).
//   - adapter_openai.go: OpenAI-compatible server (embeddings, chat completions).
//   - adapter_llama.go: in-process llama.cpp generator. Enabled with `-tags=llama`;
//     adapter_llama_stub.go fails fast when the tag is not set.
//   - iforest.go, baseline.go: isolation forest anomaly detector fit on a
//     baseline dataset at load time.
//
// Implementations are expected to be safe for concurrent use unless documented
// otherwise; the registry serializes the ones that are not.
package backend
