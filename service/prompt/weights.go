// Package prompt collects portfolio weights from a user, interactively or from a flag value
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	dm "github.com/labib-r/portfolio-risk/data/models"
	"github.com/labib-r/portfolio-risk/service/core"
)

var ErrNoInput = errors.New("input ended before every weight was entered")

// WeightPrompter asks for one weight per asset on Out and reads the answers from In.
// Answers are whitespace separated, so several weights may be typed on one line.
type WeightPrompter struct {
	In  io.Reader
	Out io.Writer
}

// Weights prompts for the weight of every asset in order
func (p *WeightPrompter) Weights(assets []dm.AssetID) ([]float64, error) {
	fmt.Fprintf(p.Out, "\nEnter portfolio weights for each asset.\n")
	fmt.Fprintf(p.Out, "They should sum to 1.0 (100%% total).\n\n")

	scanner := bufio.NewScanner(p.In)
	scanner.Split(bufio.ScanWords)

	weights := make([]float64, len(assets))
	for i, asset := range assets {
		fmt.Fprintf(p.Out, "Weight for %s (as decimal, e.g. 0.3): ", asset)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading weight for %s: %w", asset, err)
			}
			return nil, fmt.Errorf("weight for %s: %w: %w", asset, core.ErrMalformedInput, ErrNoInput)
		}

		w, err := parseWeight(i+1, scanner.Text())
		if err != nil {
			return nil, err
		}
		weights[i] = w
	}

	return weights, nil
}

// ParseWeights reads a comma separated weight list such as "0.3,0.3,0.4"
func ParseWeights(s string) ([]float64, error) {
	tokens := strings.Split(s, ",")

	weights := make([]float64, len(tokens))
	for i, token := range tokens {
		w, err := parseWeight(i+1, token)
		if err != nil {
			return nil, err
		}
		weights[i] = w
	}

	return weights, nil
}

func parseWeight(entry int, token string) (float64, error) {
	token = strings.TrimSpace(token)
	w, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, &core.ParseError{Row: entry, Token: token, Err: err}
	}
	return w, nil
}
