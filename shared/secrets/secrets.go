// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

// Package secrets resolves API credentials from the environment, with
// optional indirection through AWS Secrets Manager. A key is looked up
// as a plain environment variable first; if that is unset and
// <KEY>_SECRET_ARN is present, the value is fetched from Secrets
// Manager and cached.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// DefaultCacheTTL is how long fetched secret values are reused.
const DefaultCacheTTL = 5 * time.Minute

// secretsAPI is the subset of the Secrets Manager client used by the resolver.
type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Resolver resolves credential values from env vars or AWS Secrets Manager.
type Resolver struct {
	client secretsAPI
	cache  map[string]cacheEntry
	mu     sync.RWMutex
	ttl    time.Duration
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewResolver creates a Resolver. The Secrets Manager client is built
// lazily on first ARN lookup so that env-only deployments never touch AWS.
func NewResolver() *Resolver {
	return &Resolver{
		cache: make(map[string]cacheEntry),
		ttl:   DefaultCacheTTL,
	}
}

// Resolve returns the credential for the given environment key.
// Resolution order: the env var itself, then the secret named by
// <key>_SECRET_ARN. Returns "" when neither is configured.
func (r *Resolver) Resolve(ctx context.Context, key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}

	arn := os.Getenv(key + "_SECRET_ARN")
	if arn == "" {
		return "", nil
	}

	r.mu.RLock()
	entry, ok := r.cache[arn]
	r.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	value, err := r.fetch(ctx, arn, key)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[arn] = cacheEntry{value: value, expiresAt: time.Now().Add(r.ttl)}
	r.mu.Unlock()

	return value, nil
}

func (r *Resolver) fetch(ctx context.Context, arn, key string) (string, error) {
	client, err := r.getClient(ctx)
	if err != nil {
		return "", err
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch secret %s: %w", maskARN(arn), err)
	}

	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", maskARN(arn))
	}

	// Secrets may be stored as a JSON object keyed by env var name, or as
	// a raw string.
	var asMap map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &asMap); err == nil {
		if v, ok := asMap[key]; ok {
			return v, nil
		}
		return "", fmt.Errorf("secret %s does not contain key %s", maskARN(arn), key)
	}

	return *out.SecretString, nil
}

func (r *Resolver) getClient(ctx context.Context) (secretsAPI, error) {
	r.mu.RLock()
	client := r.client
	r.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		r.client = secretsmanager.NewFromConfig(cfg)
	}
	return r.client, nil
}

// maskARN truncates an ARN for logging so secret names don't leak in full.
func maskARN(arn string) string {
	if len(arn) <= 24 {
		return arn
	}
	return arn[:24] + "..."
}
