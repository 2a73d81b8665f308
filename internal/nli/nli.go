// Package nli wraps a local textual-entailment model. Given a (premise,
// hypothesis) pair it returns the three-way probability distribution over
// contradiction / neutral / entailment.
//
// Inference runs on whatever backend hugot provides. Without an accelerator
// it falls back to CPU, which is orders of magnitude slower for a full
// corpus; that trade-off is the caller's to make.
package nli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/ppiankov/graphaudit/internal/model"
)

// Scores is a three-way entailment distribution.
type Scores struct {
	Contradiction float64
	Neutral       float64
	Entailment    float64
}

// EntailmentFunc judges whether the premise entails the hypothesis.
// It is a function value so scorers can be tested without a model.
type EntailmentFunc func(premise, hypothesis string) (Scores, error)

// sequence separator understood by cross-encoder NLI checkpoints
const pairSeparator = " [SEP] "

// PrepareModel downloads the ONNX model if it is not present locally and
// returns the model path.
func PrepareModel(modelName, modelDir string) (string, error) {
	local := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))

	if _, err := os.Stat(local); os.IsNotExist(err) {
		if err := os.MkdirAll(modelDir, 0755); err != nil {
			return "", fmt.Errorf("create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		downloadOptions.OnnxFilePath = "onnx/model.onnx"
		downloaded, err := hugot.DownloadModel(modelName, modelDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("download model %s: %w", modelName, err)
		}
		local = downloaded
	}

	return local, nil
}

// NewLocalEntailment loads the configured NLI cross-encoder and returns an
// EntailmentFunc backed by it, plus a close function releasing the session.
func NewLocalEntailment(cfg model.NLIConfig) (EntailmentFunc, func() error, error) {
	modelPath, err := PrepareModel(cfg.ModelName, cfg.ModelDir)
	if err != nil {
		return nil, nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, nil, fmt.Errorf("create hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "nli-pipeline",
	}
	nliPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, nil, fmt.Errorf("create NLI pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, nil, fmt.Errorf("create NLI pipeline: %w", err)
	}

	entail := func(premise, hypothesis string) (Scores, error) {
		// Cross-encoders score the pair as one sequence; the tokenizer
		// truncates to the model's max length.
		input := premise + pairSeparator + hypothesis

		result, err := nliPipeline.RunPipeline([]string{input})
		if err != nil {
			return Scores{}, fmt.Errorf("run NLI inference: %w", err)
		}
		if len(result.ClassificationOutputs) == 0 || len(result.ClassificationOutputs[0]) == 0 {
			return Scores{}, fmt.Errorf("no classification output")
		}

		return scoresFromLabels(result.ClassificationOutputs[0]), nil
	}

	return entail, session.Destroy, nil
}

func scoresFromLabels(outputs []pipelines.ClassificationOutput) Scores {
	var s Scores
	for _, out := range outputs {
		switch strings.ToLower(out.Label) {
		case "contradiction":
			s.Contradiction = float64(out.Score)
		case "neutral":
			s.Neutral = float64(out.Score)
		case "entailment":
			s.Entailment = float64(out.Score)
		}
	}
	return s
}
