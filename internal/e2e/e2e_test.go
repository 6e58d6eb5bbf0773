package e2e

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"assessml/internal/registry"
	"assessml/pkg/types"
)

type envelope[T any] struct {
	Status     string  `json:"status"`
	RequestID  string  `json:"request_id"`
	Payload    T       `json:"payload"`
	Confidence float64 `json:"confidence"`
	Explain    string  `json:"explain"`
	Code       int     `json:"code"`
}

func post[T any](t *testing.T, url, body string) (int, envelope[T]) {
	t.Helper()
	resp, raw := httpPostJSON(t, url, []byte(body))
	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("json %s: %v (%s)", url, err, raw)
	}
	return resp.StatusCode, env
}

func TestE2E_AllRoutes(t *testing.T) {
	infer := fakeInferenceServer(t)
	srv, reg, err := newServer(t, modelsConfig(infer.URL, writeBaseline(t)))
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if reg.State() != registry.StateReady {
		t.Fatalf("state=%s", reg.State())
	}

	code, jd := post[types.JDResult](t, srv.URL+"/ml/parse-jd", `{"text":"Senior backend developer, Python and AWS. Contact Alice."}`)
	if code != http.StatusOK {
		t.Fatalf("parse-jd status=%d", code)
	}
	if strings.Join(jd.Payload.Skills, ",") != "AWS,Python" {
		t.Fatalf("skills=%v", jd.Payload.Skills)
	}
	if jd.Payload.Role != "backend developer" || jd.Payload.Experience != "senior" {
		t.Fatalf("jd=%+v", jd.Payload)
	}
	if jd.Confidence <= 0 || jd.Confidence > 1 {
		t.Fatalf("confidence=%v", jd.Confidence)
	}

	code, qs := post[types.QuestionSet](t, srv.URL+"/ml/generate-questions", `{"skill":"Python","difficulty":"easy"}`)
	if code != http.StatusOK {
		t.Fatalf("generate-questions status=%d", code)
	}
	if len(qs.Payload.Questions) != 3 || qs.Payload.Raw == "" {
		t.Fatalf("questions=%+v", qs.Payload)
	}
	if qs.Payload.Questions[1].Answer != 2 {
		t.Fatalf("letter answer not resolved: %+v", qs.Payload.Questions[1])
	}

	code, gr := post[types.GradeResult](t, srv.URL+"/ml/grade-answer", `{"answer":"goroutines are cheap threads","model_answer":"goroutines are cheap threads"}`)
	if code != http.StatusOK {
		t.Fatalf("grade-answer status=%d", code)
	}
	if gr.Payload.Score != 10 || gr.Payload.Explanation == "" {
		t.Fatalf("grade=%+v", gr.Payload)
	}

	code, pl := post[types.PlagiarismResult](t, srv.URL+"/ml/check-plagiarism", `{"texts":["for i in range(10): print(i)","for i in range(10): print(i)","SELECT * FROM users"],"code":true}`)
	if code != http.StatusOK {
		t.Fatalf("check-plagiarism status=%d", code)
	}
	if pl.Payload.Flag != types.FlagHighRisk || pl.Payload.Pair != [2]int{0, 1} {
		t.Fatalf("plagiarism=%+v", pl.Payload)
	}

	code, an := post[types.AnomalyResult](t, srv.URL+"/ml/analyze-anomaly", `{"features":[400, 60]}`)
	if code != http.StatusOK {
		t.Fatalf("analyze-anomaly status=%d", code)
	}
	if an.Payload.Risk != types.RiskHigh {
		t.Fatalf("anomaly=%+v", an.Payload)
	}

	code, bad := post[any](t, srv.URL+"/ml/analyze-anomaly", `{"features":[1, 2, 3]}`)
	if code != http.StatusBadRequest || bad.Status != types.StatusError {
		t.Fatalf("wrong dimension: status=%d env=%+v", code, bad)
	}
}

func TestE2E_DegradedServesRemainingCapabilities(t *testing.T) {
	infer := fakeInferenceServer(t)
	models := modelsConfig(infer.URL, "")
	srv, reg, err := newServer(t, models)
	if !registry.IsModelLoad(err) {
		t.Fatalf("expected load error, got %v", err)
	}
	if reg.State() != registry.StateDegraded {
		t.Fatalf("state=%s", reg.State())
	}

	resp, _ := httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz status=%d", resp.StatusCode)
	}

	code, env := post[any](t, srv.URL+"/ml/analyze-anomaly", `{"features":[1, 2]}`)
	if code != http.StatusServiceUnavailable || env.Code != http.StatusServiceUnavailable {
		t.Fatalf("anomaly status=%d env=%+v", code, env)
	}

	code, _ = post[types.PlagiarismResult](t, srv.URL+"/ml/check-plagiarism", `{"texts":["a b c","d e f"]}`)
	if code != http.StatusOK {
		t.Fatalf("plagiarism status=%d", code)
	}

	resp, body := httpGet(t, srv.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status status=%d", resp.StatusCode)
	}
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("json: %v", err)
	}
	if st.State != "degraded" {
		t.Fatalf("status=%+v", st)
	}
	last := st.Capabilities[len(st.Capabilities)-1]
	if last.Capability != string(registry.AnomalyDetector) || last.Loaded || last.Error == "" {
		t.Fatalf("anomaly status=%+v", last)
	}
}

func TestE2E_UpstreamFailureIsBadGateway(t *testing.T) {
	infer := fakeInferenceServer(t)
	models := modelsConfig(infer.URL, writeBaseline(t))
	models.Generator.Endpoint = infer.URL + "/missing"
	srv, _, err := newServer(t, models)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	code, env := post[any](t, srv.URL+"/ml/generate-questions", `{"skill":"Go","difficulty":"hard"}`)
	if code != http.StatusBadGateway || env.Status != types.StatusError {
		t.Fatalf("status=%d env=%+v", code, env)
	}
	if !strings.Contains(env.Explain, "text-generator") {
		t.Fatalf("explain=%q", env.Explain)
	}
}
