// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// serviceCatalog maps AWS service short names to one-line descriptions.
// The lookup is keyed on these names appearing in the query or being
// passed explicitly as the service argument.
var serviceCatalog = map[string]string{
	"ec2":            "Amazon EC2 provides scalable compute capacity in the cloud",
	"s3":             "Amazon S3 is object storage built to store and retrieve any amount of data",
	"rds":            "Amazon RDS makes it easy to set up, operate, and scale a relational database",
	"lambda":         "AWS Lambda lets you run code without provisioning or managing servers",
	"vpc":            "Amazon VPC lets you provision a logically isolated section of AWS Cloud",
	"iam":            "AWS IAM enables you to manage access to AWS services and resources securely",
	"cloudformation": "AWS CloudFormation gives you an easy way to model AWS resources",
	"cloudwatch":     "Amazon CloudWatch is a monitoring service for AWS resources and applications",
}

// AWSKnowledge is a deterministic, side-effect-free lookup over the
// service catalog plus fixed best-practice guidance. It performs no I/O;
// a real documentation search integration can replace it behind the same
// contract.
type AWSKnowledge struct{}

// NewAWSKnowledge creates the knowledge lookup tool
func NewAWSKnowledge() *AWSKnowledge {
	return &AWSKnowledge{}
}

// Name returns the tool name presented to agents
func (t *AWSKnowledge) Name() string {
	return "AWS Knowledge Query"
}

// Description returns the tool description presented to agents
func (t *AWSKnowledge) Description() string {
	return "Query AWS documentation, best practices, and technical information. " +
		"Use this for AWS service information, configuration guidance, and troubleshooting."
}

// Run satisfies the crew Tool contract. The service is detected from the
// query text; the error is always nil since no I/O occurs.
func (t *AWSKnowledge) Run(_ context.Context, query string) (string, error) {
	return t.Lookup(query, ""), nil
}

// Lookup renders guidance for a query, optionally focused on a service.
// Identical inputs always produce identical output.
func (t *AWSKnowledge) Lookup(query, service string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "AWS Guidance for: %s\n", query)
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	if service != "" {
		fmt.Fprintf(&b, "Service Focus: %s\n\n", strings.ToUpper(service))
	}

	if mentioned := t.mentionedServices(query, service); len(mentioned) > 0 {
		b.WriteString("Relevant AWS Services:\n")
		for _, name := range mentioned {
			fmt.Fprintf(&b, "• %s: %s\n", strings.ToUpper(name), serviceCatalog[name])
		}
		b.WriteString("\n")
	}

	b.WriteString("AWS Best Practices:\n")
	b.WriteString("• Follow the Well-Architected Framework principles\n")
	b.WriteString("• Implement proper security measures (IAM, security groups)\n")
	b.WriteString("• Use infrastructure as code (CloudFormation/CDK)\n")
	b.WriteString("• Monitor and log your resources (CloudWatch)\n")
	b.WriteString("• Optimize costs with right-sizing and reserved instances\n\n")

	b.WriteString("For specific implementation details, please refer to:\n")
	b.WriteString("• AWS Documentation: https://docs.aws.amazon.com/\n")
	b.WriteString("• AWS Architecture Center: https://aws.amazon.com/architecture/\n")

	return b.String()
}

// mentionedServices returns catalog services referenced by the query or
// the explicit service argument, in deterministic order.
func (t *AWSKnowledge) mentionedServices(query, service string) []string {
	queryLower := strings.ToLower(query)
	serviceLower := strings.ToLower(service)

	var mentioned []string
	for name := range serviceCatalog {
		if strings.Contains(queryLower, name) || serviceLower == name {
			mentioned = append(mentioned, name)
		}
	}
	sort.Strings(mentioned)
	return mentioned
}
