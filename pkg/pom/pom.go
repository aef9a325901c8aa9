// Package pom reads identity fields from Maven build descriptors (pom.xml).
//
// A descriptor is parsed into a generic element tree ([Document]) and the
// accessors project a few named fields out of it. [GroupID] and [Version]
// fall back to the <parent> element when the project does not declare them
// itself, which is how Maven inherits coordinates. [ArtifactID] is never
// inherited.
//
// All accessors return "" for a nil document or an absent tag.
package pom

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strings"
)

// FileName is the conventional descriptor file name.
const FileName = "pom.xml"

const parentTag = "parent"

var (
	errNoRoot        = errors.New("pom: no root element")
	errMultipleRoots = errors.New("pom: multiple root elements")
)

// Node is one XML element. Text holds the element's own character data,
// trimmed.
type Node struct {
	Name     string
	Text     string
	Children []*Node
}

// Child returns the first direct child element named name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildText returns the trimmed text of the first direct child named name.
func (n *Node) ChildText(name string) string {
	if c := n.Child(name); c != nil {
		return c.Text
	}
	return ""
}

// Document is a parsed descriptor.
type Document struct {
	Root *Node
}

// Parse reads an XML document into an element tree. Namespaces are dropped
// from element names.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	var (
		root  *Node
		stack []*Node
		text  []*strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			if len(stack) == 0 {
				if root != nil {
					return nil, errMultipleRoots
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
			text = append(text, &strings.Builder{})
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		case xml.EndElement:
			n := stack[len(stack)-1]
			n.Text = strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		}
	}
	if root == nil {
		return nil, errNoRoot
	}
	return &Document{Root: root}, nil
}

// ParseFile parses the descriptor at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// ArtifactID returns the project's own artifactId. It never falls back to
// the parent.
func ArtifactID(doc *Document) string {
	if doc == nil {
		return ""
	}
	return doc.Root.ChildText("artifactId")
}

// GroupID returns the project's groupId, inherited from <parent> if absent.
func GroupID(doc *Document) string {
	return inherited(doc, "groupId")
}

// Version returns the project's version, inherited from <parent> if absent.
func Version(doc *Document) string {
	return inherited(doc, "version")
}

// ParentArtifactID returns the artifactId declared inside <parent>.
func ParentArtifactID(doc *Document) string {
	if doc == nil {
		return ""
	}
	return doc.Root.Child(parentTag).ChildText("artifactId")
}

func inherited(doc *Document, tag string) string {
	if doc == nil {
		return ""
	}
	if v := doc.Root.ChildText(tag); v != "" {
		return v
	}
	return doc.Root.Child(parentTag).ChildText(tag)
}
