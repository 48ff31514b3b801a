// Package ledger keeps a versioned history of validation results per input
// in DynamoDB.
//
// Each validation run of a source appends one Entry. Versions are assigned
// with conditional writes, so concurrent validators of the same source never
// overwrite each other.
//
// Table schema:
//   - Partition key: source (string) - the input location
//   - Sort key: version (number) - monotonically increasing per source
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name fastq-validations \
//	  --attribute-definitions AttributeName=source,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=source,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package ledger
