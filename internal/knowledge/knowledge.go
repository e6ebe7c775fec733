// Package knowledge holds the static topic table used for canned
// informational replies.
package knowledge

import (
	"strings"

	"github.com/xaenox/chronex/internal/models"
)

type topic struct {
	name        string
	information string
}

type category struct {
	name   string
	topics []topic
}

var defaultTable = []category{
	{
		name: "programming_concepts",
		topics: []topic{
			{"variables", "Variables store data values. In Python: `x = 10` creates a variable. Use descriptive names!"},
			{"functions", "Functions are reusable code blocks. Define with `def name(params):` in Python or `function name(params) {}` in JavaScript."},
			{"loops", "Loops repeat code. `for` loops iterate over sequences, `while` loops continue while condition is true."},
			{"classes", "Classes define objects with properties and methods. Use OOP for structured, maintainable code."},
			{"async", "Asynchronous programming handles operations without blocking. Use `async/await` for cleaner async code."},
		},
	},
	{
		name: "ai_ml",
		topics: []topic{
			{"neural_networks", "Neural networks are AI models inspired by the brain. Layers of neurons process data, learning patterns through training."},
			{"deep_learning", "Deep learning uses multi-layer neural networks for complex pattern recognition in images, text, and more."},
			{"nlp", "Natural Language Processing enables computers to understand human language through tokenization, embeddings, and transformers."},
			{"computer_vision", "Computer vision teaches machines to interpret visual data using CNNs for image classification and object detection."},
		},
	},
	{
		name: "data_structures",
		topics: []topic{
			{"arrays", "Arrays store ordered collections. Fast access by index O(1), but insertion/deletion can be O(n)."},
			{"linked_lists", "Linked lists use nodes with pointers. Efficient insertion O(1) but slower access O(n)."},
			{"hash_maps", "Hash maps (dictionaries) provide O(1) average lookup using key-value pairs with hashing."},
			{"trees", "Trees are hierarchical structures. Binary search trees enable O(log n) search with proper balancing."},
			{"graphs", "Graphs represent networks with nodes and edges. Use for social networks, maps, dependencies."},
		},
	},
	{
		name: "algorithms",
		topics: []topic{
			{"sorting", "Common algorithms: QuickSort O(n log n) average, MergeSort O(n log n) guaranteed, BubbleSort O(n²)."},
			{"searching", "Binary search O(log n) on sorted data. Linear search O(n) for unsorted. Hash lookup O(1) average."},
			{"dynamic_programming", "DP optimizes by storing subproblem solutions. Break problems into overlapping subproblems."},
			{"greedy", "Greedy algorithms make locally optimal choices. Works for problems with greedy-choice property."},
		},
	},
}

// Base is an immutable knowledge table.
type Base struct {
	entries []models.KnowledgeEntry
}

// NewBase flattens the built-in table once, preserving insertion order.
func NewBase() *Base {
	var entries []models.KnowledgeEntry
	for _, c := range defaultTable {
		for _, t := range c.topics {
			entries = append(entries, models.KnowledgeEntry{
				Category:    c.name,
				Topic:       t.name,
				Information: t.information,
			})
		}
	}
	return &Base{entries: entries}
}

// Search returns every entry whose topic, or any underscore-delimited word
// of it, occurs in the lower-cased query.
func (b *Base) Search(query string) []models.KnowledgeEntry {
	query = strings.ToLower(query)

	results := []models.KnowledgeEntry{}
	for _, entry := range b.entries {
		if matches(query, entry.Topic) {
			results = append(results, entry)
		}
	}
	return results
}

// Entries returns a copy of the whole table.
func (b *Base) Entries() []models.KnowledgeEntry {
	return append([]models.KnowledgeEntry(nil), b.entries...)
}

func matches(query, topic string) bool {
	if strings.Contains(query, topic) {
		return true
	}
	for _, word := range strings.Split(topic, "_") {
		if strings.Contains(query, word) {
			return true
		}
	}
	return false
}
