package resources

const AWS_PROVIDER = "aws"
