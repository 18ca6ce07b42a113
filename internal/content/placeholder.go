package content

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/topicgraph"
)

// Placeholder returns the fixed template problem for a topic and
// difficulty. The same inputs always yield the same content.
func Placeholder(topic topicgraph.Topic, difficulty topicgraph.Difficulty) problemgen.Problem {
	h := fnv.New32a()
	h.Write([]byte(topic.ID))
	h.Write([]byte{0})
	h.Write([]byte(difficulty))
	seed := h.Sum32()

	// Three small operands derived from the key.
	a := int(seed%40) + 10
	b := int((seed/40)%9) + 3
	c := int((seed/360)%20) + 1

	p := problemgen.Problem{
		AnswerType:       problemgen.AnswerTypeInteger,
		EstimatedMinutes: 2,
		Source:           problemgen.SourcePlaceholder,
		SourceRef:        "placeholder:" + topic.ID + ":" + string(difficulty),
	}

	switch difficulty {
	case topicgraph.Hard:
		product := a * b
		p.Question = fmt.Sprintf("%s practice: compute %d × %d + %d.", topic.Name, a, b, c)
		p.Answer = strconv.Itoa(product + c)
		p.Steps = []string{
			fmt.Sprintf("Multiply first: %d × %d = %d.", a, b, product),
			fmt.Sprintf("Then add: %d + %d = %d.", product, c, product+c),
		}
		p.Hint = "Multiplication comes before addition."
		p.EstimatedMinutes = 4
	case topicgraph.Medium:
		p.Question = fmt.Sprintf("%s practice: compute %d × %d.", topic.Name, a, b)
		p.Answer = strconv.Itoa(a * b)
		p.Steps = []string{
			fmt.Sprintf("Split %d into %d + %d.", a, a/10*10, a%10),
			fmt.Sprintf("Multiply each part by %d: %d + %d.", b, a/10*10*b, a%10*b),
			fmt.Sprintf("Add the parts: %d.", a*b),
		}
		p.Hint = "Break the larger number into tens and ones."
		p.EstimatedMinutes = 3
	default:
		p.Question = fmt.Sprintf("%s practice: compute %d + %d.", topic.Name, a, c)
		p.Answer = strconv.Itoa(a + c)
		p.Steps = []string{
			fmt.Sprintf("Start from %d.", a),
			fmt.Sprintf("Count on %d to reach %d.", c, a+c),
		}
		p.Hint = "Add the ones first."
	}
	return p
}
