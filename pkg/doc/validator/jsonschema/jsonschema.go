/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jsonschema validates JSON documents against JSON schemas, compiling each schema once.
package jsonschema

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/trustbloc/logutil-go/pkg/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/trustbloc/vp-verifier/internal/logfields"
)

var logger = log.New("jsonschema")

// ValidationError lists the schema violations of a document.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: [%s]", strings.Join(e.Violations, "; "))
}

type compileFunc func(schema []byte) (*gojsonschema.Schema, error)

// Cache holds compiled schemas keyed by the SHA-256 digest of the schema document, so two
// different schemas never share an entry even when they declare the same $id. It is shared
// by the DCQL query precheck and the "schema" credential policy.
type Cache struct {
	mu       sync.RWMutex
	compiled map[string]*gojsonschema.Schema
	compile  compileFunc
}

// NewCache returns an empty schema cache.
func NewCache() *Cache {
	return &Cache{
		compiled: map[string]*gojsonschema.Schema{},
		compile:  compile,
	}
}

// Validate checks the JSON document doc against schema. A document that does not conform
// yields a *ValidationError.
func (c *Cache) Validate(doc, schema []byte) error {
	s, err := c.schema(schema)
	if err != nil {
		return err
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	if result.Valid() {
		return nil
	}

	ve := &ValidationError{}

	for _, re := range result.Errors() {
		ve.Violations = append(ve.Violations, re.String())
	}

	return ve
}

// Len returns the number of compiled schemas.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.compiled)
}

func (c *Cache) schema(schema []byte) (*gojsonschema.Schema, error) {
	sum := sha256.Sum256(schema)
	key := hex.EncodeToString(sum[:])

	c.mu.RLock()
	s, ok := c.compiled[key]
	c.mu.RUnlock()

	if ok {
		return s, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok = c.compiled[key]; ok {
		return s, nil
	}

	s, err := c.compile(schema)
	if err != nil {
		return nil, err
	}

	c.compiled[key] = s

	logger.Debug("Compiled JSON schema", logfields.WithJSONSchemaID(key))

	return s, nil
}

var errEmptySchema = errors.New("empty JSON schema")

func compile(schema []byte) (*gojsonschema.Schema, error) {
	if len(schema) == 0 {
		return nil, errEmptySchema
	}

	s, err := gojsonschema.NewSchemaLoader().Compile(gojsonschema.NewBytesLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile JSON schema: %w", err)
	}

	return s, nil
}
