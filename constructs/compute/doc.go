// Package compute provides the EKS and ECS constructs and the S3 bucket
// construct used alongside them.
//
// EKS clusters get a managed node group, the AWS Load Balancer Controller
// installed through the AWSQS::Kubernetes registry types, and a cleanup
// custom resource for network interfaces the controller leaves behind.
// ECS clusters run Fargate services by default and can add EC2 capacity.
package compute
