package aws

import (
	"regexp"

	"github.com/stackform/stackform/pkg/sanitization"
)

// S3BucketSanitizer produces a valid S3 bucket name. Bucket naming rules are
// at https://docs.aws.amazon.com/AmazonS3/latest/userguide/bucketnamingrules.html;
// the length limit leaves room for the account-id prefix added at deploy time.
var S3BucketSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^a-z0-9.-]`),
			Replacement: "-",
		},
		// dots are legal but break virtual-hosted TLS, so drop them too
		{
			Pattern:     regexp.MustCompile(`\.`),
			Replacement: "-",
		},
	}, 52)

// S3ObjectKeySanitizer strips characters with special meaning in key prefixes.
var S3ObjectKeySanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w!\-.*'()/]+`),
			Replacement: "-",
		},
	}, 0)

// LambdaFunctionSanitizer produces a valid Lambda function name.
var LambdaFunctionSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w-]+`),
			Replacement: "",
		},
	}, 64)

// IamRoleSanitizer produces a valid IAM role name.
var IamRoleSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w+=,.@-]+`),
			Replacement: "",
		},
	}, 64)

// IamPolicySanitizer produces a valid IAM policy name.
var IamPolicySanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w+=,.@-]+`),
			Replacement: "",
		},
	}, 128)

// DynamoDBTableSanitizer produces a valid DynamoDB table name.
var DynamoDBTableSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w.-]+`),
			Replacement: "",
		},
	}, 255)

// SqsQueueSanitizer produces a valid SQS queue name.
var SqsQueueSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w-]+`),
			Replacement: "-",
		},
	}, 80)

// EcsClusterSanitizer produces a valid ECS cluster name.
var EcsClusterSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w-]+`),
			Replacement: "-",
		},
	}, 255)

// EcsServiceSanitizer produces a valid ECS service name.
var EcsServiceSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w-]+`),
			Replacement: "-",
		},
	}, 255)

// OpenSearchDomainSanitizer produces a valid OpenSearch domain name: lowercase,
// starts with a letter, no underscores, max 28 characters.
var OpenSearchDomainSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[A-Z]`),
			Replacement: "",
		},
		{
			Pattern:     regexp.MustCompile(`^[^a-z]+`),
			Replacement: "",
		},
		{
			Pattern:     regexp.MustCompile(`[^a-z0-9-]+`),
			Replacement: "-",
		},
	}, 28)

// CloudfrontFunctionSanitizer produces a valid CloudFront function name.
var CloudfrontFunctionSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w-]+`),
			Replacement: "-",
		},
	}, 64)

// KeyValueStoreSanitizer produces a valid CloudFront key-value store name.
var KeyValueStoreSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w-]+`),
			Replacement: "-",
		},
	}, 64)

// LogGroupSanitizer produces a valid CloudWatch log group name.
var LogGroupSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w\-/.#]+`),
			Replacement: "-",
		},
	}, 512)
