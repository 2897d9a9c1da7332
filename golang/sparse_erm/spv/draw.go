package spv

import (
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/pkg/errors"
)

//GraphFormats maps file extensions accepted by RenderIncidence to graphviz formats.
var GraphFormats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
}

//DrawIncidence builds the bipartite sample/feature graph of the first maxRows rows.
//Sample nodes are ellipses, feature nodes are boxes labelled with the number of samples
//touching them, and every stored entry is an edge. The caller owns both returned objects.
func (m *CSR) DrawIncidence(maxRows int) (*graphviz.Graphviz, *cgraph.Graph, error) {
	if maxRows <= 0 || maxRows > m.NRows {
		maxRows = m.NRows
	}

	graphViz := graphviz.New()
	graph, err := graphViz.Graph()
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	counts := m.ColumnCounts()
	features := make(map[int]*cgraph.Node)
	for i := 0; i < maxRows; i++ {
		sampleNode, err := graph.CreateNode(fmt.Sprintf("s_%d", i))
		if err != nil {
			return nil, nil, errors.WithStack(err)
		}
		sampleNode.Set("label", fmt.Sprintf("sample %d", i))

		cols, _ := m.Row(i)
		for _, j := range cols {
			featureNode, ok := features[j]
			if !ok {
				featureNode, err = graph.CreateNode(fmt.Sprintf("f_%d", j))
				if err != nil {
					return nil, nil, errors.WithStack(err)
				}
				featureNode.Set("label", fmt.Sprintf("f_%d\nnnz %d", j, counts[j]))
				featureNode.Set("shape", "box")
				features[j] = featureNode
			}
			if _, err := graph.CreateEdge("", sampleNode, featureNode); err != nil {
				return nil, nil, errors.WithStack(err)
			}
		}
	}
	return graphViz, graph, nil
}

//RenderIncidence draws the incidence graph of the first maxRows rows into fileName.
func (m *CSR) RenderIncidence(maxRows int, figureType, fileName string) error {
	format, ok := GraphFormats[figureType]
	if !ok {
		return errors.Errorf("spv: unknown figure type %q", figureType)
	}

	graphViz, graph, err := m.DrawIncidence(maxRows)
	if err != nil {
		return err
	}
	defer func() {
		_ = graph.Close()
		graphViz.Close()
	}()

	return errors.WithStack(graphViz.RenderFilename(graph, format, fileName))
}
