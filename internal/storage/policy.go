package storage

import (
	"encoding/json"
	"fmt"

	"github.com/minio/minio-go/v7/pkg/policy"
	"github.com/minio/minio-go/v7/pkg/set"
)

// PublicReadPolicy allows anonymous GetObject on every user's public kinds,
// i.e. arn:aws:s3:::<bucket>/*/<kind>/*.
func PublicReadPolicy(bucket string) (string, error) {
	resources := set.NewStringSet()
	for _, kind := range PublicKinds {
		resources.Add(fmt.Sprintf("arn:aws:s3:::%s/*/%s/*", bucket, kind))
	}

	doc := policy.BucketAccessPolicy{
		Version: "2012-10-17",
		Statements: []policy.Statement{
			{
				Sid:       "PublicAccess",
				Effect:    "Allow",
				Actions:   set.CreateStringSet("s3:GetObject"),
				Principal: policy.User{AWS: set.CreateStringSet("*")},
				Resources: resources,
			},
		},
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode bucket policy: %w", err)
	}
	return string(payload), nil
}
