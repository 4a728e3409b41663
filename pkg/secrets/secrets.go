// Copyright 2024 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package secrets resolves webhook URLs stored in Secret Manager.
package secrets

import (
	"context"
	"fmt"
	"hash/crc32"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
)

// ReferencePrefix marks a value that names a secret version rather than
// holding the secret itself, e.g. "sm://projects/p/secrets/s/versions/latest".
const ReferencePrefix = "sm://"

// SecretVersionAccessor is the subset of the Secret Manager client used here.
type SecretVersionAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// IsReference reports whether value is a Secret Manager reference.
func IsReference(value string) bool {
	return strings.HasPrefix(value, ReferencePrefix)
}

// ParseReference returns the secret version resource name of a reference. The
// name must have the form 'projects/*/secrets/*/versions/*'.
func ParseReference(value string) (string, error) {
	if !IsReference(value) {
		return "", fmt.Errorf("value is not a secret reference")
	}

	name := strings.TrimPrefix(value, ReferencePrefix)
	parts := strings.Split(name, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "secrets" || parts[4] != "versions" {
		return "", fmt.Errorf("secret reference %q must have the form %sprojects/*/secrets/*/versions/*", name, ReferencePrefix)
	}
	for _, p := range []string{parts[1], parts[3], parts[5]} {
		if p == "" {
			return "", fmt.Errorf("secret reference %q has an empty segment", name)
		}
	}
	return name, nil
}

// Resolve returns value unchanged unless it is a Secret Manager reference, in
// which case the referenced secret is read with a new client.
func Resolve(ctx context.Context, value string) (string, error) {
	if !IsReference(value) {
		return value, nil
	}

	sm, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create secret manager client: %w", err)
	}
	defer sm.Close()

	return ResolveWith(ctx, sm, value)
}

// ResolveWith is like Resolve but uses the given client.
func ResolveWith(ctx context.Context, client SecretVersionAccessor, value string) (string, error) {
	if !IsReference(value) {
		return value, nil
	}

	name, err := ParseReference(value)
	if err != nil {
		return "", err
	}

	secret, err := AccessSecret(ctx, client, name)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve secret: %w", err)
	}
	return strings.TrimSpace(secret), nil
}

// AccessSecret reads a secret from Secret Manager using the given client and
// validates that it was not corrupted during retrieval. The secretResourceName
// should be in the format: 'projects/*/secrets/*/versions/*'.
func AccessSecret(ctx context.Context, client SecretVersionAccessor, secretResourceName string) (string, error) {
	req := secretmanagerpb.AccessSecretVersionRequest{
		Name: secretResourceName,
	}
	result, err := client.AccessSecretVersion(ctx, &req)
	if err != nil {
		return "", fmt.Errorf("failed to access secret version %q: %w", secretResourceName, err)
	}
	if result.GetPayload() == nil {
		return "", fmt.Errorf("secret version %q has no payload", secretResourceName)
	}

	data := result.GetPayload().GetData()
	if want := result.GetPayload().DataCrc32C; want != nil {
		crc32c := crc32.MakeTable(crc32.Castagnoli)
		if got := int64(crc32.Checksum(data, crc32c)); got != *want {
			return "", fmt.Errorf("failed to access secret version %q: data corrupted", secretResourceName)
		}
	}
	return string(data), nil
}
